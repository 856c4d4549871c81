// Command apprun-demo embeds the apprun toolkit in a small command set.
//
//	apprun-demo [options] command [key=value ...] [args ...]
//	apprun-demo shell
//
// Commands: show, greet, fail, explode, version, watch. The shell reads
// commands interactively and runs each on the same prepared wrapper.
package main
