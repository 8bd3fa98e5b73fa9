package endpoint

// SnippetDocs is the contract shown next to the snippet editor. It is the
// whole surface a snippet may touch; anything not listed is unreachable.
const SnippetDocs = `Available vars:

* env
* endpoint
* request
* datetime
* dateutil
* time
* user
* json
* Response
* werkzeug
* exceptions
* params

Must declare a ` + "`result := ...`" + ` variable holding a map containing any of the keys:

* payload
* headers
* status_code

which are all optional.

Use the ` + "`log`" + ` function to record messages into the server log table.
`

// Docs returns the snippet documentation for this record. It is derived
// from the static template, recomputed rather than stored.
func (e *Endpoint) Docs() string { return SnippetDocs }
