//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/autoenable/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// LicenseSnapshotBuilder helps create license snapshots with a fluent interface.
type LicenseSnapshotBuilder struct {
	*testkit.BaseBuilder
	totalSeats int
	usedSeats  int
	licensed   []string
}

// NewLicenseSnapshotBuilder creates a builder for a 100-seat pool with 50 in use.
func NewLicenseSnapshotBuilder() *LicenseSnapshotBuilder {
	return &LicenseSnapshotBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		totalSeats:  100,
		usedSeats:   50,
	}
}

// WithSeats sets the total and used seat counts.
func (b *LicenseSnapshotBuilder) WithSeats(total, used int) *LicenseSnapshotBuilder {
	b.totalSeats = total
	b.usedSeats = used
	return b
}

// WithUnlimitedSeats makes the pool unlimited.
func (b *LicenseSnapshotBuilder) WithUnlimitedSeats() *LicenseSnapshotBuilder {
	b.totalSeats = 0
	return b
}

// WithLicensed adds identities that already hold a seat.
func (b *LicenseSnapshotBuilder) WithLicensed(emails ...string) *LicenseSnapshotBuilder {
	b.licensed = append(b.licensed, emails...)
	return b
}

// Build creates the snapshot (satisfies testkit.Builder interface).
func (b *LicenseSnapshotBuilder) Build() interface{} {
	return b.BuildLicenseSnapshot()
}

// BuildLicenseSnapshot creates the snapshot with a concrete return type.
func (b *LicenseSnapshotBuilder) BuildLicenseSnapshot() entities.LicenseSnapshot {
	return entities.LicenseSnapshot{
		TotalSeats: b.totalSeats,
		UsedSeats:  b.usedSeats,
		Licensed:   entities.NewIdentitySet(b.licensed...),
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *LicenseSnapshotBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.totalSeats = 100
	b.usedSeats = 50
	b.licensed = nil
	return b
}

// Clone creates a deep copy of the LicenseSnapshotBuilder.
func (b *LicenseSnapshotBuilder) Clone() testkit.Builder {
	return &LicenseSnapshotBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		totalSeats:  b.totalSeats,
		usedSeats:   b.usedSeats,
		licensed:    append([]string(nil), b.licensed...),
	}
}
