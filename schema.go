package prpass

import (
	"fmt"
	"log/slog"
	"regexp"
)

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_ ]*$`)

// Schema is an ordered, immutable set of unique field names. The order fixes how field
// values are concatenated into the master-key salt, so two schemas with the same names
// in a different order produce different keys.
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema builds a schema from positional field names.
//
// It fails with ErrInvalidFieldName when a name is empty, starts with a digit, contains
// characters outside [A-Za-z0-9_ ], or repeats (the last case also wraps ErrDuplicateField).
func NewSchema(names ...string) (*Schema, error) {
	s := &Schema{
		names: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for _, name := range names {
		if !fieldNamePattern.MatchString(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFieldName, name)
		}
		if _, dup := s.index[name]; dup {
			return nil, fmt.Errorf("%w: %w: %q", ErrInvalidFieldName, ErrDuplicateField, name)
		}
		s.index[name] = len(s.names)
		s.names = append(s.names, name)
	}
	return s, nil
}

// DefaultSchema returns the field set used by the command-line front end:
// full_name, birthday, password and miscellaneous.
func DefaultSchema() *Schema {
	s, err := NewSchema("full_name", "birthday", "password", "miscellaneous")
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the field names in order.
func (s *Schema) Fields() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.names)
}

// Has reports whether name is a field of the schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// SchemaBuilder accumulates field names for a Schema.
type SchemaBuilder struct {
	names []string
	built bool
}

func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{}
}

// Field appends a field name. Validation is deferred to Build.
func (b *SchemaBuilder) Field(name string) *SchemaBuilder {
	b.names = append(b.names, name)
	return b
}

// Build validates the accumulated names. A builder can be built only once.
func (b *SchemaBuilder) Build() (*Schema, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	s, err := NewSchema(b.names...)
	if err != nil {
		return nil, err
	}
	b.built = true
	return s, nil
}

// Field is one name=value pair for NewProfileFromFields. Its formatted and logged forms
// never include Value.
type Field struct {
	Name  string
	Value string
}

func (f Field) String() string {
	return "prpass.Field{" + f.Name + "}"
}

func (f Field) GoString() string {
	return f.String()
}

func (f Field) Format(s fmt.State, _ rune) {
	_, _ = fmt.Fprint(s, f.String())
}

func (f Field) LogValue() slog.Value {
	return slog.GroupValue(slog.String("name", f.Name))
}
