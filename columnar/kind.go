package columnar

// Kind identifies the element type of a converted Column
type Kind int

const (
	// Object columns hold generic values, produced for arrow types without a dedicated conversion
	Object Kind = iota
	// Bool columns hold []bool
	Bool
	// Int8 columns hold []int8
	Int8
	// Int16 columns hold []int16
	Int16
	// Int32 columns hold []int32
	Int32
	// Int64 columns hold []int64
	Int64
	// Uint8 columns hold []uint8
	Uint8
	// Uint16 columns hold []uint16
	Uint16
	// Uint32 columns hold []uint32
	Uint32
	// Uint64 columns hold []uint64
	Uint64
	// Float32 columns hold []float32
	Float32
	// Float64 columns hold []float64
	Float64
	// String columns hold []string
	String
	// Bytes columns hold [][]byte
	Bytes
)

var kindNames = [...]string{
	Object:  "object",
	Bool:    "bool",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
	String:  "string",
	Bytes:   "bytes",
}

// String returns the name of this Kind
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsNumeric returns true iff this Kind holds integer or floating point values
func (k Kind) IsNumeric() bool {
	return k >= Int8 && k <= Float64
}
