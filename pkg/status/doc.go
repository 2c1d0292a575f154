/*
Package status reports a running copy to people and to logs.

	            +-------------+
	            | Operation   |
	            |  (Hooks)    |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+-----+
	|  LogSink | |  BarSink | | UserLogger|
	| (zerolog)| |  (pterm) | |  (pterm)  |
	+----------+ +----------+ +-----------+

🎯 Purpose:
- Throttled structured progress lines for non-interactive runs
- A live progress bar for terminals
- One readable line per state change

🔍 Example:

	sink := status.NewBarSink(os.Stderr, "backup")
	defer sink.Done()

	hooks := status.Hooks(ctx, "backup", sink)
	op, _ := operation.New(req, operation.Options{Hooks: hooks})
*/
package status
