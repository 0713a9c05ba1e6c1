package notifier

import "context"

// Notifier is the rendering collaborator for geofence alerts. Calls are
// fire-and-forget: the engine never blocks on, or reacts to, how a message
// is shown or a tone is played.
type Notifier interface {
	ShowMessage(ctx context.Context, text, style string) error
	PlayTone(ctx context.Context) error
}
