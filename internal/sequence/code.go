// Package sequence derives the human-readable display codes assigned to new
// records. Codes are a pure function of the row id; the storage layer assigns
// them in the same transaction as the insert.
package sequence

import "fmt"

// PatientCode formats a patient id as its display code: "PAT-" plus the id
// zero-padded to four digits. Ids of five or more digits print in full.
func PatientCode(id int64) string {
	return fmt.Sprintf("PAT-%04d", id)
}
