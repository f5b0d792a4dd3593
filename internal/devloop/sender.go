package devloop

// Sender dispatches one console command to the server.
// *rcon.Session satisfies it.
type Sender interface {
	Send(command string) error
}
