// Package casefile loads line-oriented test cases and evaluates networks
// against them.
//
// Two line forms are accepted, "input | parameters | expected" and
// "input -> expected":
//
//	1.0, 2.0, -0.5 | 0.5, 0.3, 0.2, 0.1 | 1.1
//	1.0, 2.0, -0.5 -> 1.1
//
// Values are comma separated. Blank lines and lines starting with '#' are
// skipped. A line that cannot be parsed is reported through errors.Warn as a
// *errors.MalformedLineWarning and loading continues with the next line.
package casefile
