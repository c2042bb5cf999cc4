package utils_test

import (
	"context"
	"database/sql"
	"testing"

	"shoplens-backend/utils"
)

func TestCreatePagination(t *testing.T) {
	p := utils.CreatePagination(45, 2, 10)
	if p.TotalItems != 45 || p.CurrentPage != 2 || p.PageSize != 10 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
	if p.TotalPages != 5 {
		t.Fatalf("expected 5 total pages for 45 items of 10, got %d", p.TotalPages)
	}
}

func TestCreatePaginationDefaults(t *testing.T) {
	p := utils.CreatePagination(3, 0, 0)
	if p.CurrentPage != 1 {
		t.Fatalf("expected default page 1, got %d", p.CurrentPage)
	}
	if p.PageSize != 10 {
		t.Fatalf("expected default page size 10, got %d", p.PageSize)
	}
	if p.TotalPages != 1 {
		t.Fatalf("expected 1 total page, got %d", p.TotalPages)
	}
}

func TestNullStringToStringPtr(t *testing.T) {
	ns := sql.NullString{String: "hello", Valid: true}
	p := utils.NullStringToStringPtr(ns)
	if p == nil || *p != "hello" {
		t.Fatalf("expected pointer to 'hello', got %v", p)
	}

	ns2 := sql.NullString{Valid: false}
	p2 := utils.NullStringToStringPtr(ns2)
	if p2 != nil {
		t.Fatalf("expected nil pointer, got %v", p2)
	}
}

func TestPointerToString(t *testing.T) {
	s := "world"
	if utils.PointerToString(&s) != "world" {
		t.Fatalf("expected 'world'")
	}
	if utils.PointerToString(nil) != "<nil>" {
		t.Fatalf("expected '<nil>' for nil pointer")
	}
}

func TestEmptyToNil(t *testing.T) {
	if utils.EmptyToNil("  ") != nil {
		t.Fatalf("expected nil for blank input")
	}
	p := utils.EmptyToNil("  Beverages ")
	if p == nil || *p != "Beverages" {
		t.Fatalf("expected trimmed pointer, got %v", p)
	}
}

func TestValidateAndNormalizeRole(t *testing.T) {
	role, ok := utils.ValidateAndNormalizeRole("Merchant")
	if !ok || role != "merchant" {
		t.Fatalf("expected normalized merchant role, got %q ok=%v", role, ok)
	}
	if _, ok := utils.ValidateAndNormalizeRole("staff"); ok {
		t.Fatalf("staff is not a valid role")
	}
	if !utils.IsValidRole("ADMIN") {
		t.Fatalf("admin must be valid regardless of case")
	}
}

func TestGenerateSaleNumberUnsupportedDB(t *testing.T) {
	_, err := utils.GenerateSaleNumber(context.Background(), struct{}{}, "m-1")
	if err == nil {
		t.Fatalf("expected error for unsupported DB type")
	}
}
