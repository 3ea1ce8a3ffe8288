// Package cover models a configured adaptive cover and computes its position.
//
// An Entry is one physical cover: a vertical blind, an awning or a tilted
// venetian. Given the sun position and the distance to the area that must
// stay shaded, Calculate returns the position (0 = closed, 100 = open)
// that keeps direct sunlight out of that area.
//
// Geometry for a vertical blind:
//
//	          sun
//	           \  elevation
//	 window ┌───\────┐
//	        │    \   │ height = distance / cos(gamma) * tan(elevation)
//	        │     \  │
//	 floor ─┴──────\─┴── shaded area edge at "distance" metres
//
// gamma is the horizontal angle between the window normal and the sun.
package cover
