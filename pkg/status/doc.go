/*
Package status describes what a pipeline stage did.

	+-------------+        +-------------+
	|    Stage    | -----> |   Report    |
	| (fetch/...) |        | (counters)  |
	+-------------+        +------+------+
	                              |
	                 +------------+------------+
	                 |                         |
	           +-----+-----+             +-----+-----+
	           |  zerolog  |             |  console  |
	           | (Object)  |             | (Format*) |
	           +-----------+             +-----------+

🎯 Purpose:
- Names the counters each stage returns (saved, framed, skipped, failed, ...)
- Formats per-item outcomes and whole-stage summaries for the console
- Logs reports as structured zerolog objects

📝 Reports are values: stages build them with NewReport(...).Add(...) and the
operation runner logs and prints them. A report marked Skipped means the stage
found nothing to process (see filestore.ErrEmptyFileSet).
*/
package status
