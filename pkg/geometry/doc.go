// Package geometry defines the polygon soup records exchanged between the
// builders, the converters and the excluded IO layer, together with the
// error classes and small value types shared by the whole kernel.
package geometry
