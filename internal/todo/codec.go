package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/todo-go/internal/isodate"
)

//go:embed tasks.schema.json
var schemaJSON string

const schemaURL = "https://github.com/nibzard/todo-go/tasks.schema.json"

// SchemaJSON returns the JSON Schema for the stored task collection.
func SchemaJSON() string {
	return schemaJSON
}

// record is the stored shape of a Task.
type record struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Completed   bool    `json:"completed"`
	DueDate     *string `json:"dueDate,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

func toRecord(t Task) record {
	r := record{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: isodate.Format(t.CreatedAt),
	}
	if t.Description != "" {
		desc := t.Description
		r.Description = &desc
	}
	if t.DueDate != nil {
		due := isodate.Format(*t.DueDate)
		r.DueDate = &due
	}
	return r
}

func fromRecord(r record) (Task, error) {
	if r.ID == "" {
		return Task{}, &ValidationError{Path: "id", Err: ErrMissingID}
	}
	if strings.TrimSpace(r.CreatedAt) == "" {
		return Task{}, &ValidationError{Path: "createdAt", Err: ErrMissingCreatedAt}
	}
	created, err := isodate.Parse(r.CreatedAt)
	if err != nil {
		return Task{}, &ValidationError{Path: "createdAt", Err: err}
	}
	t := Task{
		ID:        r.ID,
		Title:     r.Title,
		Completed: r.Completed,
		CreatedAt: created,
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.DueDate != nil && strings.TrimSpace(*r.DueDate) != "" {
		due, err := isodate.Parse(*r.DueDate)
		if err != nil {
			return Task{}, &ValidationError{Path: "dueDate", Err: err}
		}
		t.DueDate = &due
	}
	return t, nil
}

// MarshalJSON encodes t in its stored form.
func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(toRecord(t))
}

// UnmarshalJSON decodes t from its stored form.
func (t *Task) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	decoded, err := fromRecord(r)
	if err != nil {
		return err
	}
	*t = decoded
	return nil
}

// EncodeTasks serialises the collection in order.
func EncodeTasks(tasks []Task) (string, error) {
	records := make([]record, len(tasks))
	for i, t := range tasks {
		records[i] = toRecord(t)
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return string(data), nil
}

// DecodeOptions controls DecodeTasks.
type DecodeOptions struct {
	// ValidateSchema checks the document against the embedded JSON Schema
	// before decoding.
	ValidateSchema bool
}

// DecodeTasks parses a stored collection. Any malformed record, missing
// id or createdAt, unparseable date or repeated id fails the whole decode.
func DecodeTasks(data string, opts DecodeOptions) ([]Task, error) {
	if opts.ValidateSchema {
		if err := ValidateDocument(data); err != nil {
			return nil, err
		}
	}

	var records []record
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}

	tasks := make([]Task, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		t, err := fromRecord(r)
		if err != nil {
			if ve, ok := err.(*ValidationError); ok {
				return nil, &ValidationError{Path: fmt.Sprintf("[%d].%s", i, ve.Path), Err: ve.Err}
			}
			return nil, err
		}
		if _, dup := seen[t.ID]; dup {
			return nil, &ValidationError{Path: fmt.Sprintf("[%d].id", i), Err: fmt.Errorf("%w %q", ErrDuplicateID, t.ID)}
		}
		seen[t.ID] = struct{}{}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

func taskSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("load task schema: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

// ValidateDocument checks a stored document against the task schema. The
// returned error is a *ValidationError for the first violation found.
func ValidateDocument(data string) error {
	schema, err := taskSchema()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse tasks: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		errs := schemaErrors(err)
		if len(errs) > 0 {
			return errs[0]
		}
		return &ValidationError{Err: ErrInvalidTaskDocument}
	}
	return nil
}

// schemaErrors flattens a jsonschema error tree into leaf ValidationErrors.
func schemaErrors(err error) []error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []error{err}
	}
	var out []error
	collectSchemaErrors(&out, ve)
	return out
}

func collectSchemaErrors(out *[]error, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		*out = append(*out, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%w: %s", ErrInvalidTaskDocument, err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(out, cause)
	}
}

// jsonPointerToPath renders "/2/createdAt" as "[2].createdAt".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
