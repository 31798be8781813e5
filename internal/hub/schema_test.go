package hub

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestHubProtocolSchema(t *testing.T) {
	compiler := jsonschema.NewCompiler()
	data, err := os.ReadFile("../../api/schema/hub_v1.schema.json")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if err := compiler.AddResource("hub_v1.schema.json", strings.NewReader(string(data))); err != nil {
		t.Fatalf("add resource: %v", err)
	}
	schema, err := compiler.Compile("hub_v1.schema.json")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	samples := []string{
		`{}`,
		`{"type":1,"target":"PlayerJoined","arguments":["game-1","PlayerA"]}`,
		`{"type":1,"target":"AnswerGivenFromPlayer","arguments":["game-1","2",500]}`,
		`{"type":1,"target":"ShowQuestion","arguments":[{"questionNumber":1,"question":"q","answers":["a","b","c","d"],"rightAnswer":"0010","maxAnswers":4}]}`,
		`{"type":1,"target":"ShowMedal","arguments":[2]}`,
		`{"type":1,"target":"PlayAgain","arguments":["old","new",1,"654321"]}`,
		`{"type":1,"target":"PlayerDisconnected","arguments":[true]}`,
		`{"type":6}`,
	}

	for i, s := range samples {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			t.Fatalf("unmarshal sample %d: %v", i, err)
		}
		if err := schema.Validate(v); err != nil {
			t.Fatalf("schema validate sample %d: %v", i, err)
		}
	}
}
