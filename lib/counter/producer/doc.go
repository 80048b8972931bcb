// Package producer simulates internal callers that update counters directly
// against the shared store without going through the network path.
//
// Two kinds of workers run concurrently:
//
//   - task workers, each owning one counter call.thread.worker.<id>, incrementing
//     it after long random pauses
//   - request workers, incrementing req.page.<page> for a random page after short
//     random pauses
//
// The workload runs alongside client connections and is useful to observe
// snapshot behaviour of the different engines under steady background writes.
package producer
