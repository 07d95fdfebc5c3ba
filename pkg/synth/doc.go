// Package synth searches for gate circuits realizing target permutations.
//
// # Searchers
//
// Four strategies cover different target sizes:
//
//   - [Exact] BFS returns provably minimal circuits but runs out of memory
//     beyond a handful of gates; its bidirectional variant pushes deeper by
//     joining two frontiers, accepting only joins that verify.
//   - [MeetInTheMiddle] enumerates a forward reachability table once and
//     amortizes it across many queries on the same gate set.
//   - [Transform] greedy walks scale to any width with no minimality or
//     success guarantee; [OutputFixer] is a deterministic variant that
//     settles one output state at a time.
//   - [Genetic] evolves random circuits and reaches targets the others
//     miss, at the cost of run-to-run variance.
//
// All searchers draw gates from a shared [GateSet], which prepares each
// gate's permutation once per width.
//
// # Absent Results
//
// A searcher that finds nothing returns a nil circuit and a nil error.
// Errors are reserved for malformed inputs such as width mismatches. Every
// circuit a searcher does return has been checked against the target, so
// presence implies correctness.
//
// # Determinism
//
// [Exact], [MeetInTheMiddle] and [OutputFixer] are fully deterministic. The
// stochastic searchers take a *rand.Rand so runs can be reproduced by
// fixing the seed; passing nil seeds from the clock.
package synth
