package providers

import "testing"

func TestObjectLookups(t *testing.T) {
	obj, err := DecodeObject([]byte(`{
		"songMid": "",
		"mid": "m1",
		"id": 12345678901234,
		"title": "Song",
		"count": 3,
		"data": {"song": {"list": [{"name": "A"}, 5, {"singerName": "B"}]}}
	}`))
	if err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}

	if got := obj.String("songname", "title"); got != "Song" {
		t.Errorf("String = %q", got)
	}
	if got := obj.ID("songMid", "mid"); got != "m1" {
		t.Errorf("ID should skip blank strings, got %q", got)
	}
	if got := obj.ID("id"); got != "12345678901234" {
		t.Errorf("ID should keep large numbers exact, got %q", got)
	}
	if n, ok := obj.Int64("title", "count"); !ok || n != 3 {
		t.Errorf("Int64 = %d, %v", n, ok)
	}

	list := obj.Path("data", "song").Array("list")
	if len(list) != 2 {
		t.Fatalf("Expected non-object elements dropped, got %d items", len(list))
	}
	if got := JoinNames(list, " / ", "name", "singerName"); got != "A / B" {
		t.Errorf("JoinNames = %q", got)
	}
	if obj.Path("missing", "song") != nil {
		t.Error("Expected nil for a missing path")
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := DecodeObject([]byte(`[1,2]`)); err == nil {
		t.Error("Expected an error decoding an array as an object")
	}
	if _, err := DecodeObject([]byte(`null`)); err == nil {
		t.Error("Expected an error for null")
	}
	if _, err := DecodeArray([]byte(`{"a":1}`)); err == nil {
		t.Error("Expected an error decoding an object as an array")
	}
	if items, err := DecodeArray([]byte(`[{"a":1},"x"]`)); err != nil || len(items) != 1 {
		t.Errorf("Unexpected DecodeArray result %v, %v", items, err)
	}
}
