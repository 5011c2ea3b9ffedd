package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestRegisteredDocIsValidJSON(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	var parsed struct {
		Swagger string                     `json:"swagger"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("doc is not JSON: %v", err)
	}
	if parsed.Swagger != "2.0" || parsed.Paths["/messages"] == nil {
		t.Fatalf("swagger = %q, %d paths", parsed.Swagger, len(parsed.Paths))
	}
}
