// Package todo owns the task collection and its durable form.
//
// The collection is stored under a single key as a JSON array of task
// records. Dates are ISO-8601 strings in UTC with millisecond precision:
//
//	[
//	  {
//	    "id": "01901e5c-8a4b-7c3e-9d2f-1a2b3c4d5e6f",
//	    "title": "Buy milk",
//	    "description": "Two litres",
//	    "completed": false,
//	    "dueDate": "2024-01-10T00:00:00.000Z",
//	    "createdAt": "2024-01-01T08:30:00.000Z"
//	  }
//	]
//
// description and dueDate are omitted when unset.
//
// # Store
//
// Store holds the canonical in-memory collection. It hydrates once from
// storage when constructed and reports Loading until that finishes. After
// hydration every mutation that changes the collection schedules a
// background write of the whole collection. Mutations never fail and never
// wait for storage; a failed write is logged and the in-memory state stays.
//
// # Validation
//
// The store accepts whatever it is given. Title and description limits
// are enforced by ValidateInput and Draft, which the presentation layer
// calls before handing data to the store. Stored records can optionally be
// checked against an embedded JSON Schema while hydrating.
package todo
