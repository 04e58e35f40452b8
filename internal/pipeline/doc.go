// Package pipeline provides a framework for executing reconciliation steps
// in sequence.
//
// A run over one mirror pair is a pipeline: load both trees, scan for
// issues, run the repair passes, write changed documents back. Each stage
// is implemented as a Step that receives the shared State and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context between steps
// 4. The scan and repair commands become different step lists over the
//    same machinery
//
// The pipeline supports both single mirror pairs and batch processing of
// all configured pairs with concurrency control using errgroup.
package pipeline
