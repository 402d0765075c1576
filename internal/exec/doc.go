// Package exec runs untrusted code in a throwaway Docker container: the
// collaborator the code_execution-capability demo agent dispatches task
// handling to instead of running generated code in-process.
package exec
