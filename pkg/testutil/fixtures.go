package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Fixed identifiers and clock values for deterministic tests.
var (
	TestRunID         = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestModelID       = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	TestTransactionID = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	TestTime          = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
)
