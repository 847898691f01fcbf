// Command motionforge is the CLI for the motion extraction and retargeting
// pipeline: it runs the batch processor, manages the work queue, validates
// mission documents, and maintains the configuration file.
package main
