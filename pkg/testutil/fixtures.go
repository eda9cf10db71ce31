package testutil

import (
	"github.com/google/uuid"
)

// Fixed UUIDs for deterministic testing
var (
	TestProposalID1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestProposalID2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	TestTenantID    = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	TestRunID       = uuid.MustParse("00000000-0000-0000-0000-000000000020")
)
