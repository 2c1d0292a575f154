/*
Package operation runs robocopy in two phases and watches the second one.

	+-------------+     +-------------+     +-------------+
	|    Scan     | --> |    Copy     | --> |   Report    |
	| (/L dry run)|     | (poll log)  |     | (summary)   |
	+-------------+     +------+------+     +-------------+
	                           |
	                    +------+------+
	                    |  Progress   |
	                    | (estimator) |
	                    +-------------+

🎯 Purpose:
- Learn how many bytes will move before moving any
- Estimate completion from the growing copy log
- Turn the final log and the exit code into a report

🔄 Flow:
1. Validate that source and destination are directories
2. Run the scan with /L and read the byte total from its log
3. Run the copy, polling its log on a fixed interval
4. Parse the summary block, classify the exit code, build the report

🗂️ Log files:
The scan log is always a temp file owned by the operation. The copy log is a
temp file unless the request names one. Owned logs are removed after a normal
finish and after a failed scan. Nothing is removed when the context is
cancelled, so the logs can be inspected.

🛑 Cancellation:
The context is checked while waiting for the scan and on every poll tick.
Processes are not bound to the context; Hooks.OnCancel receives the running
process and decides whether to kill it.

🔍 Example:

	op, err := operation.New(operation.Request{
		Source:      `C:\data`,
		Destination: `E:\backup\data`,
		Options:     robocopy.Options{Mirror: true},
	}, operation.Options{
		Hooks: operation.Hooks{
			OnProgress: func(s progress.Sample) { fmt.Printf("%.1f%%\n", s.Percent) },
		},
	})
	if err != nil {
		return err
	}
	rep, err := op.Execute(ctx)
*/
package operation
