package models

import (
	"fmt"
	"strings"
)

// Variant selects which applications of the template are kept.
type Variant string

const (
	VariantFull         Variant = "full"
	VariantFrontendOnly Variant = "frontend-only"
	VariantBackendOnly  Variant = "backend-only"
)

// Variants lists every variant in prompt order.
var Variants = []Variant{VariantFull, VariantFrontendOnly, VariantBackendOnly}

// IsValid checks if the variant is known
func (v Variant) IsValid() bool {
	switch v {
	case VariantFull, VariantFrontendOnly, VariantBackendOnly:
		return true
	default:
		return false
	}
}

// String returns the string representation of Variant
func (v Variant) String() string {
	return string(v)
}

// Description is the one-line label shown in prompts.
func (v Variant) Description() string {
	switch v {
	case VariantFrontendOnly:
		return "Frontend application (Next.js app with authentication and UI)"
	case VariantBackendOnly:
		return "Backend API (Express REST API with database and authentication)"
	default:
		return "Full-stack application (web, API, database and authentication)"
	}
}

// Summary describes a project of this variant. It becomes the manifest
// description and the README introduction.
func (v Variant) Summary() string {
	switch v {
	case VariantFrontendOnly:
		return "Next.js web application with Better Auth and shared shadcn/ui components"
	case VariantBackendOnly:
		return "Express REST API with Prisma, PostgreSQL and Better Auth"
	default:
		return "Full-stack monorepo with a Next.js web app, an Express API, Prisma and Better Auth"
	}
}

// HasFrontend reports whether the web app survives this variant.
func (v Variant) HasFrontend() bool {
	return v != VariantBackendOnly
}

// HasBackend reports whether the API app survives this variant.
func (v Variant) HasBackend() bool {
	return v != VariantFrontendOnly
}

// ParseVariant parses a string into a Variant
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", fmt.Errorf("invalid variant: %s (must be full, frontend-only, or backend-only)", s)
	}
	return v, nil
}
