// Package forksync keeps a fork's main branch in step with the repository it
// was forked from.
//
// A run validates the checkout (it is a git working tree, origin is set and is
// not the upstream project, local changes are handled, the upstream remote
// exists), asks the operator to confirm, then runs fetch, checkout, merge and
// push in that order, stopping at the first failure. Changes stashed on the
// way in are restored on the way out however the run ends.
//
// Every git invocation goes through an exec.CommandExecutor and every question
// through a prompt.Confirmer, so a run can be driven end to end with mocks.
package forksync
