// Package forkwork runs units of work in isolated operating-system processes
// and collects the messages each worker reports back to its launcher over a
// private one-directional channel.
//
// # Architecture
//
// Three layers, leaf-first:
//   - Transport wraps one half of a connected AF_UNIX socket pair and moves
//     fixed-size, space-padded frames.
//   - channel owns both halves of one pair: the worker sends on its half, the
//     launcher receives on the other.
//   - Orchestrator spawns worker processes, tracks them in launch order, waits
//     for them and aggregates their messages.
//
// Workers are spawned by re-executing the current binary. The host program
// registers its work functions and calls Main at the top of main:
//
//	func sum(s *forkwork.Sender, args ...any) bool {
//	    total := 0.0
//	    for _, a := range args {
//	        total += a.(float64) // numeric args arrive as int64 or float64
//	    }
//	    return s.Send(total) == nil
//	}
//
//	func main() {
//	    forkwork.Register("sum", sum)
//	    forkwork.Main() // no-op in the launcher, runs the work in a child
//
//	    orc, err := forkwork.New("sum", true)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    orc.Run(1.0, 2.0)
//	    orc.Run(3.0, 4.0)
//	    ok, _ := orc.WaitAll()
//	    ...
//	}
//
// In async mode Run returns immediately and WaitAll reaps every worker in the
// order it was launched, never in completion order. In sync mode Run blocks
// until its one worker exits. Debug mode skips process isolation entirely and
// runs the work function inline, which makes structural bugs in work functions
// surface directly in the launcher.
package forkwork

// Version is the current library version
const Version = "1.0.0"
