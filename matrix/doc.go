// Package matrix offers the dense linear-algebra capability consumed by the
// GLM engine.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix behind the Matrix interface, with
//     safe accessors that return errors instead of panicking.
//   - Ensure, the single shape-aware (re)allocation helper: a cached buffer
//     is reused when its shape already matches and replaced otherwise.
//   - Destination-reusing kernels (MulInto, TransposeInto, SubInto,
//     ScaleInto, ScaleRowsInto, CopyInto) with allocating wrappers
//     (Mul, Transpose, Sub, Scale) for one-off use.
//   - Condition-aware inversion, 2-norm condition number, column null space
//     and residual-forming projectors, backed by gonum's LU and SVD.
//   - Column reductions and L2 column normalisation.
//   - Plain-text serialisation (WriteText/ReadText) for diagnostic dumps.
//
// Kernels follow one contract: operands are never mutated, a destination
// that aliases an operand is never written in place, and every failure is a
// package sentinel matched with errors.Is.
package matrix
