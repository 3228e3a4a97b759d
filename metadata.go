package mmdb

// Metadata is a read-only snapshot of the database's metadata section,
// independent of the reader it came from. The schema is advisory: a field
// missing from the database reads as its zero value, but a metadata
// section that is not a map at the top level fails materialization.
type Metadata struct {
	binaryFormatMajorVersion uint
	binaryFormatMinorVersion uint
	buildEpoch               uint64
	databaseType             string
	description              map[string]string
	ipVersion                int
	languages                []string
	nodeCount                uint
	recordSize               uint
}

func (md *Metadata) BinaryFormatMajorVersion() uint { return md.binaryFormatMajorVersion }
func (md *Metadata) BinaryFormatMinorVersion() uint { return md.binaryFormatMinorVersion }

// BuildEpoch is the database build time as a Unix timestamp.
func (md *Metadata) BuildEpoch() uint64 { return md.buildEpoch }

func (md *Metadata) DatabaseType() string { return md.databaseType }

// Description maps language codes to localized database descriptions.
func (md *Metadata) Description() map[string]string { return md.description }

// IPVersion is 4 or 6.
func (md *Metadata) IPVersion() int { return md.ipVersion }

// Languages lists the locale codes record names may be available in, in
// database order.
func (md *Metadata) Languages() []string { return md.languages }

func (md *Metadata) NodeCount() uint { return md.nodeCount }

// RecordSize is the size of a search-tree record in bits.
func (md *Metadata) RecordSize() uint { return md.recordSize }

func materializeMetadata(v Value) (*Metadata, error) {
	if v.Kind() != Map {
		return nil, ErrInvalidMetadata
	}
	md := &Metadata{description: map[string]string{}}
	for _, e := range v.Map() {
		switch e.Key {
		case "binary_format_major_version":
			md.binaryFormatMajorVersion = uint(metaUint(e.Value))
		case "binary_format_minor_version":
			md.binaryFormatMinorVersion = uint(metaUint(e.Value))
		case "build_epoch":
			md.buildEpoch = metaUint(e.Value)
		case "database_type":
			if e.Value.Kind() == String {
				md.databaseType = e.Value.String()
			}
		case "description":
			if e.Value.Kind() == Map {
				for _, d := range e.Value.Map() {
					if d.Value.Kind() == String {
						md.description[d.Key] = d.Value.String()
					}
				}
			}
		case "ip_version":
			md.ipVersion = int(metaUint(e.Value))
		case "languages":
			if e.Value.Kind() == Slice {
				for _, lang := range e.Value.Slice() {
					if lang.Kind() == String {
						md.languages = append(md.languages, lang.String())
					}
				}
			}
		case "node_count":
			md.nodeCount = uint(metaUint(e.Value))
		case "record_size":
			md.recordSize = uint(metaUint(e.Value))
		}
	}
	return md, nil
}

// metaUint reads any of the unsigned kinds; database writers are not
// consistent about the width they pick for small metadata numbers.
func metaUint(v Value) uint64 {
	switch v.Kind() {
	case Uint16, Uint32, Uint64:
		return v.Uint64()
	default:
		return 0
	}
}
