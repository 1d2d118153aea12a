// Package testing provides a component testing harness for vtree.
//
// # Quick Start
//
// Create a tester, mount a component, and make assertions:
//
//	func TestCounter(t *testing.T) {
//	    tester := vtest.NewTesterWithT(t)
//	    if err := vtest.Mount(tester, Counter, struct{}{}); err != nil {
//	        t.Fatal(err)
//	    }
//
//	    // Simulate input
//	    tester.Emit(vtest.ByLabel("inc!"), "clicked")
//
//	    // Assert state
//	    if !tester.Find(vtest.ByLabel("1")).Exists() {
//	        t.Error("expected label '1'")
//	    }
//	}
//
// Components run on the headless toolkit. Every toolkit call is recorded, so
// tests can assert how many mutations an update caused:
//
//	tester.Recorder().Reset()
//	tester.Emit(vtest.ByLabel("inc!"), "clicked")
//	if n := tester.Recorder().Count(toolkit.OpSetProperty); n != 1 { ... }
//
// # Snapshot Testing
//
// Capture and compare widget tree snapshots:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/counter.snapshot.json")
//
// Update snapshots with:
//
//	VTREE_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Task Testing
//
// Control time for deterministic task sleeps:
//
//	tester.Clock().Advance(time.Second)
//	tester.Pump()
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import vtest "github.com/go-drift/vtree/pkg/testing"
package testing
