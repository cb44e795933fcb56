package domain

// EditState is the per-row editing lifecycle: Idle → Editing → Committing → Idle.
type EditState string

const (
	EditIdle       EditState = "IDLE"
	EditEditing    EditState = "EDITING"
	EditCommitting EditState = "COMMITTING"
)
