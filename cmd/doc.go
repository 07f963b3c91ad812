// Package cmd provides the command-line interface for coreplane.
//
// The CLI is a thin layer over the platform SDK: one subcommand per
// resource, each with list/get/delete plus the operations the resource
// supports. List and get share the output flags --output, --columns and
// --query; mutating commands offer --wait-for-*-sec flags to block until
// the controller finishes the asynchronous work.
//
// Command structure:
//
//	coreplane login                        # verify credentials, print session
//	coreplane k8scluster [list|get|create|delete|...]
//	coreplane k8sworker  [list|get|create-with-ssh-key|set-storage|...]
//	coreplane gateway    [list|get|create-with-ssh-key|delete]
//	coreplane tenant     [list|get|create|users|kubeconfig|...]
//	coreplane user | role | lock | license | catalog
//	coreplane httpclient [get|post|put|delete]  # raw API passthrough
//	coreplane version
//	coreplane self-update
//
// Connection settings come from ~/.coreplane/config.yaml (overridable with
// --config and COREPLANE_* environment variables); --profile selects a
// profile section.
package cmd
