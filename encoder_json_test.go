package elog

import (
	"encoding/json"
	"testing"
)

func TestJSONEncoderRender(t *testing.T) {
	buf := NewLogBuffer(0)
	f := MustParse("${level} ${msg}")
	rec := &Record{Level: Info, Message: "hello \"world\""}
	enc := NewJSONEncoder(buf)
	f.Render(enc, rec, nil, DefaultProcessInfo, false)
	enc.Close()

	var got map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\ngot: %s", err, buf.String())
	}
	if got["level"] != "INFO" {
		t.Errorf("level = %q, want INFO", got["level"])
	}
	if got["msg"] != `hello "world"` {
		t.Errorf("msg = %q", got["msg"])
	}
}

func TestJSONEncoderIgnoresStaticText(t *testing.T) {
	buf := NewLogBuffer(0)
	f := MustParse("prefix ${msg} suffix")
	rec := &Record{Message: "x"}
	enc := NewJSONEncoder(buf)
	f.Render(enc, rec, nil, DefaultProcessInfo, false)
	enc.Close()

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected only the msg field, got %v", got)
	}
}

func TestJSONEncoderEmptyObject(t *testing.T) {
	buf := NewLogBuffer(0)
	enc := NewJSONEncoder(buf)
	enc.Close()
	if buf.String() != "{}" {
		t.Errorf("got %q, want {}", buf.String())
	}
}
