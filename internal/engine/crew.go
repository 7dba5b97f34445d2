package engine

import "fmt"

// ResolveRole decides the seat to apportion time for, once per flight and
// before apportionment. A concrete default role wins; auto takes the role
// the Operating-Experience data recorded, else captain.
func ResolveRole(defaultRole Role, ov *Override) Role {
	if defaultRole != RoleAuto {
		return defaultRole
	}
	if ov != nil && ov.Role != "" {
		return ov.Role
	}
	return RoleCaptain
}

// Apportion splits block and flight time into PIC/SIC/duration figures for
// the given role. Override hours, when present, replace the computed values;
// both are clamped so neither PIC nor SIC time can exceed the block hours.
// An unknown role is a fatal configuration error.
func Apportion(f FlightRecord, role Role, ov *Override) (CrewTimeResult, error) {
	share, ok := roleShares[role]
	if !ok {
		return CrewTimeResult{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	block := f.BlockHours
	picTime := block * share.pic
	sicTime := block * share.sic

	if ov != nil {
		if ov.PICTime != nil {
			picTime = *ov.PICTime
		}
		if ov.SICTime != nil {
			sicTime = *ov.SICTime
		}
	}
	if picTime > block {
		picTime = block
	}
	if sicTime > block {
		sicTime = block
	}

	return CrewTimeResult{
		PICTime:      picTime,
		SICTime:      sicTime,
		Duration:     f.FlightHours * share.duration,
		CrossCountry: block,
	}, nil
}

// ValidRole reports whether the role is one of the four known seats or auto.
func ValidRole(r Role) bool {
	if r == RoleAuto {
		return true
	}
	_, ok := roleShares[r]
	return ok
}
