package models

// ShockPosition identifies which suspension unit a value refers to.
type ShockPosition string

const (
	PositionFront ShockPosition = "FRONT" // fork
	PositionRear  ShockPosition = "REAR"  // rear shock
)

// ServiceType represents the kind of suspension service performed.
type ServiceType string

const (
	ServiceBasic ServiceType = "BASIC" // lower seals, oil change
	ServiceFull  ServiceType = "FULL"  // complete rebuild
)

// IsValidPosition checks if a shock position is valid.
func IsValidPosition(p ShockPosition) bool {
	return p == PositionFront || p == PositionRear
}

// IsValidServiceType checks if a service type is valid.
func IsValidServiceType(t ServiceType) bool {
	return t == ServiceBasic || t == ServiceFull
}

// Label returns the rider-facing name for a shock position.
func (p ShockPosition) Label() string {
	if p == PositionFront {
		return "Fork"
	}
	return "Rear shock"
}

// Label returns the rider-facing name for a service type.
func (t ServiceType) Label() string {
	if t == ServiceFull {
		return "full"
	}
	return "basic"
}
