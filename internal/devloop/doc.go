// Package devloop runs the development feedback loop against a live
// server: message classification, the reload test, the operator console,
// the periodic hook-time listing, deployment, and source watching. All
// background tasks run under one Supervisor.
package devloop
