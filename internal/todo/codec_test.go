package todo

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEncodeTasks(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 30, 0, 123456789, time.UTC)
	tasks := []Task{
		{ID: "1", Title: "Buy milk", CreatedAt: created},
		{ID: "2", Title: "Pay rent", Description: "landlord", Completed: true, DueDate: date(2024, 1, 5), CreatedAt: created},
	}

	got, err := EncodeTasks(tasks)
	if err != nil {
		t.Fatalf("EncodeTasks: %v", err)
	}
	want := `[{"id":"1","title":"Buy milk","completed":false,"createdAt":"2024-01-01T09:30:00.123Z"},` +
		`{"id":"2","title":"Pay rent","description":"landlord","completed":true,"dueDate":"2024-01-05T00:00:00.000Z","createdAt":"2024-01-01T09:30:00.123Z"}]`
	if got != want {
		t.Errorf("EncodeTasks:\n got %s\nwant %s", got, want)
	}
}

func TestEncodeEmpty(t *testing.T) {
	got, err := EncodeTasks(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "[]" {
		t.Errorf("EncodeTasks(nil) = %s, want []", got)
	}
}

func TestDecodeTasks(t *testing.T) {
	data := `[
		{"id":"1","title":"Buy milk","completed":false,"dueDate":"2024-01-10T00:00:00.000Z","createdAt":"2024-01-01T00:00:00.000Z"},
		{"id":"2","title":"Call dentist","description":null,"completed":true,"dueDate":null,"createdAt":"2024-01-02T08:00:00+02:00"}
	]`
	for _, validate := range []bool{false, true} {
		tasks, err := DecodeTasks(data, DecodeOptions{ValidateSchema: validate})
		if err != nil {
			t.Fatalf("DecodeTasks(validate=%v): %v", validate, err)
		}
		if len(tasks) != 2 {
			t.Fatalf("got %d tasks, want 2", len(tasks))
		}
		if tasks[0].DueDate == nil || !tasks[0].DueDate.Equal(*date(2024, 1, 10)) {
			t.Errorf("dueDate: got %v", tasks[0].DueDate)
		}
		if tasks[1].DueDate != nil || tasks[1].Description != "" || !tasks[1].Completed {
			t.Errorf("second task: %+v", tasks[1])
		}
		wantCreated := time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC)
		if !tasks[1].CreatedAt.Equal(wantCreated) {
			t.Errorf("createdAt: got %v, want %v", tasks[1].CreatedAt, wantCreated)
		}
	}
}

func TestDecodeTasksErrors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantPath string
		wantErr  error
	}{
		{name: "not json", data: "{", wantErr: nil},
		{name: "object not array", data: `{"id":"1"}`, wantErr: nil},
		{name: "missing id", data: `[{"title":"x","completed":false,"createdAt":"2024-01-01T00:00:00Z"}]`, wantPath: "[0].id", wantErr: ErrMissingID},
		{name: "missing createdAt", data: `[{"id":"1","title":"x","completed":false}]`, wantPath: "[0].createdAt", wantErr: ErrMissingCreatedAt},
		{name: "bad createdAt", data: `[{"id":"1","title":"x","completed":false,"createdAt":"soon"}]`, wantPath: "[0].createdAt"},
		{name: "bad dueDate", data: `[{"id":"1","title":"x","completed":false,"dueDate":"2024-13-45","createdAt":"2024-01-01T00:00:00Z"}]`, wantPath: "[0].dueDate"},
		{name: "duplicate id", data: `[{"id":"1","title":"x","completed":false,"createdAt":"2024-01-01T00:00:00Z"},{"id":"1","title":"y","completed":false,"createdAt":"2024-01-01T00:00:00Z"}]`, wantPath: "[1].id", wantErr: ErrDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTasks(tt.data, DecodeOptions{})
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
			if tt.wantPath != "" {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected *ValidationError, got %T: %v", err, err)
				}
				if ve.Path != tt.wantPath {
					t.Errorf("path: got %q, want %q", ve.Path, tt.wantPath)
				}
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantPath string
	}{
		{name: "valid", data: `[{"id":"1","title":"x","completed":false,"createdAt":"2024-01-01T00:00:00Z"}]`},
		{name: "empty", data: `[]`},
		{name: "not array", data: `{}`, wantPath: ""},
		{name: "completed not bool", data: `[{"id":"1","title":"x","completed":"yes","createdAt":"2024-01-01T00:00:00Z"}]`, wantPath: "[0].completed"},
		{name: "empty id", data: `[{"id":"","title":"x","completed":false,"createdAt":"2024-01-01T00:00:00Z"}]`, wantPath: "[0].id"},
		{name: "numeric title", data: `[{"id":"1","title":"ok","completed":false,"createdAt":"2024-01-01T00:00:00Z"},{"id":"2","title":7,"completed":false,"createdAt":"2024-01-01T00:00:00Z"}]`, wantPath: "[1].title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.data)
			valid := tt.name == "valid" || tt.name == "empty"
			if valid {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected a schema error")
			}
			if !errors.Is(err, ErrInvalidTaskDocument) {
				t.Errorf("expected ErrInvalidTaskDocument, got %v", err)
			}
			var ve *ValidationError
			if errors.As(err, &ve) && ve.Path != tt.wantPath {
				t.Errorf("path: got %q, want %q", ve.Path, tt.wantPath)
			}
		})
	}
}

func TestSchemaJSONEmbedded(t *testing.T) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(SchemaJSON()), &doc); err != nil {
		t.Fatalf("embedded schema is not JSON: %v", err)
	}
	if doc["$id"] != schemaURL {
		t.Errorf("$id: got %v, want %s", doc["$id"], schemaURL)
	}
}

func TestTaskJSON(t *testing.T) {
	in := Task{ID: "1", Title: "x", Description: "d", DueDate: date(2024, 3, 1), CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"dueDate":"2024-03-01T00:00:00.000Z"`) {
		t.Errorf("stored form missing dueDate: %s", data)
	}

	var out Task
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if !out.Equal(in) {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"#", ""},
		{"/0", "[0]"},
		{"/2/createdAt", "[2].createdAt"},
		{"#/1/title", "[1].title"},
		{"/a~1b/c~0d", "a/b.c~d"},
	}
	for _, tt := range tests {
		if got := jsonPointerToPath(tt.in); got != tt.want {
			t.Errorf("jsonPointerToPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
