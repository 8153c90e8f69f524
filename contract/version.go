/*
version.go - Effective contract version resolution

PURPOSE:
  Picks the single version of a contract that governs a target date.
  Supersession is explicit and authoritative: when validity windows overlap,
  a version loses to any candidate that names it in supersedes_id. Overlap
  that supersession cannot disambiguate is a data integrity fault reported
  to the caller, never resolved silently.

ALGORITHM:
  1. Candidates: versions whose [valid_from, valid_to) contains the date
  2. Zero candidates       -> ErrNoActiveVersion
  3. One candidate         -> that version
  4. Several: drop every candidate superseded by another candidate;
     exactly one survivor -> that version, anything else -> ambiguous

SEE ALSO:
  - types.go: ContractVersion and SupersedesID
*/
package contract

import (
	"github.com/voyago/tariff-engine/engine"
)

// ResolveVersion returns the contract version effective on the given date.
func ResolveVersion(versions []ContractVersion, onDate engine.Date) (ContractVersion, error) {
	var candidates []ContractVersion
	for _, v := range versions {
		if v.Covers(onDate) {
			candidates = append(candidates, v)
		}
	}

	switch len(candidates) {
	case 0:
		return ContractVersion{}, engine.ErrNoActiveVersion
	case 1:
		return candidates[0], nil
	}

	// Overlapping validity: supersession links decide. A candidate is out if
	// some other candidate replaces it.
	superseded := make(map[engine.VersionID]bool, len(candidates))
	for _, v := range candidates {
		if v.SupersedesID != "" {
			superseded[v.SupersedesID] = true
		}
	}

	var survivors []ContractVersion
	for _, v := range candidates {
		if !superseded[v.ID] {
			survivors = append(survivors, v)
		}
	}

	if len(survivors) == 1 {
		return survivors[0], nil
	}

	// Zero survivors means a supersession cycle among the candidates; more
	// than one means un-superseded overlap. Both are integrity faults.
	ids := make([]engine.VersionID, 0, len(candidates))
	for _, v := range survivors {
		ids = append(ids, v.ID)
	}
	if len(ids) == 0 {
		for _, v := range candidates {
			ids = append(ids, v.ID)
		}
	}
	return ContractVersion{}, &engine.AmbiguousOverlapError{
		ContractID: candidates[0].ContractID,
		OnDate:     onDate,
		VersionIDs: ids,
	}
}
