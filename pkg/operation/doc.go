/*
Package operation sequences the pipeline stages and times them.

	+-------------+     +-------------+     +-------------+     +-------------+
	|    feeds    | --> |   images    | --> |    frame    | --> |   rewrite   |
	| (download)  |     | (download)  |     | (composite) |     | (xml edit)  |
	+-------------+     +-------------+     +-------------+     +-------------+

🎯 Purpose:
- Adapts each stage (fetch feeds, fetch images, frame, rewrite) into an Operation
- Runs operations strictly in order through a Runner
- Logs start, end and duration of every stage (Timed)
- Emits one structured record for the whole run (Script)

🔄 Flow:
1. The CLI builds the stages from config
2. Runner executes them one by one, collecting a status.Report per stage
3. A stage that finds an empty input folder is reported as skipped
4. Any other stage error stops the run

🔍 Example:

	runner := operation.NewRunner(logger)
	reports, err := runner.Run(ctx,
		operation.Stage("fetch feeds", feeds.Fetch),
		operation.Stage("frame images", compositor.Composite),
	)
*/
package operation
