// Package identity derives deterministic UUIDv5 identities for every entity
// kind in the ingestion data model (spec §4.3) and parses the date formats
// the source documents use.
package identity

import "github.com/google/uuid"

// Namespace constants for UUIDv5 derivation (spec §4.3). These are fixed and
// published; changing any of them reissues every id derived through it, so
// they are parsed from literal strings rather than computed.
var (
	NSMeeting         = uuid.MustParse("6b4d1f2a-6e3b-4f1c-9a7d-2c8e5f0b1a3d")
	NSAgenda          = uuid.MustParse("7c5e2a3b-7f4c-5a2d-ab8e-3d9f6a1c2b4e")
	NSChildAction     = uuid.MustParse("8d6f3b4c-8a5d-6b3e-bc9f-4eaf7b2d3c5f")
	NSChildDecision   = uuid.MustParse("9e7a4c5d-9b6e-7c4f-cda0-5fba8c3e4d60")
	NSChildDiscussion = uuid.MustParse("af8b5d6e-ac7f-8d50-deb1-60cb9d4f5e71")
)
