package models_test

import (
	"testing"

	"shoplens-backend/models"
)

func TestJSONBScan_NullColumn(t *testing.T) {
	j := models.JSONB{"stale": true}
	if err := j.Scan(nil); err != nil {
		t.Fatalf("scanning a NULL jsonb column should not fail: %v", err)
	}
	if j != nil {
		t.Fatalf("expected nil map after scanning NULL, got %v", j)
	}
}

func TestJSONBScan_Bytes(t *testing.T) {
	var j models.JSONB
	if err := j.Scan([]byte(`{"store_type": "cafe", "staff": 3}`)); err != nil {
		t.Fatalf("unexpected scan error: %v", err)
	}
	if j["store_type"] != "cafe" {
		t.Fatalf("unexpected store_type %v", j["store_type"])
	}
	if n, ok := j["staff"].(float64); !ok || n != 3 {
		t.Fatalf("unexpected staff value %v", j["staff"])
	}
}

func TestJSONBScan_RejectsOtherTypes(t *testing.T) {
	var j models.JSONB
	if err := j.Scan(42); err == nil {
		t.Fatal("expected an error when scanning a non-byte value")
	}
}

func TestJSONBValue_RoundTrips(t *testing.T) {
	j := models.JSONB{"name": "Beans & Brew"}
	v, err := j.Value()
	if err != nil {
		t.Fatalf("unexpected value error: %v", err)
	}
	raw, ok := v.([]byte)
	if !ok {
		t.Fatalf("expected []byte, got %T", v)
	}

	var back models.JSONB
	if err := back.Scan(raw); err != nil {
		t.Fatalf("unexpected scan error: %v", err)
	}
	if back["name"] != "Beans & Brew" {
		t.Fatalf("unexpected round-tripped name %v", back["name"])
	}
}
