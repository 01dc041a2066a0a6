// Package cqrs routes reads and writes between two stores so that technotes can
// move its data from one backend to another without downtime.
//
// # Modes
//
// [CQRSStore] never writes to both stores. Its [MigrationMode] decides which
// store serves each side:
//
//  1. [ModeSingle]: reads and writes go to the primary.
//  2. [ModeReadOnly]: reads go to the primary and writes fail. This is the
//     window for the final catch-up sync.
//  3. [ModeSwitching]: reads go to the secondary and writes go to the primary.
//     Live traffic validates the secondary while rollback stays possible.
//  4. [ModeReversed]: reads and writes go to the secondary.
//
// # Catch-up synchronization
//
// [CQRSStore.SyncMissedUpdates] copies users and then notes whose CreatedAt or
// UpdatedAt fall within a window from the primary to the secondary.
// [CQRSStore.ReverseSyncMissedUpdates] copies the other way. Users go first so
// that copied notes never reference an owner the destination has not seen.
//
// Deletes are not detected by timestamps. A note deleted on the source after
// being copied stays on the destination until removed by other means.
package cqrs
