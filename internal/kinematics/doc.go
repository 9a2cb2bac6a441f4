// Package kinematics maps generalized coordinates to planar geometry.
//
// Positions are built by composing 3x3 homogeneous transforms. A link of
// length ℓ at angle θ is [Link](θ, ℓ) = Rotation(θ)·Translation(0, -ℓ), and a
// chain of links is the product of its transforms, so the second joint of a
// double pendulum is Link(θ1, ℓ1)·Link(θ2, ℓ2) applied to the origin.
//
// Springs are unit-height zig-zags from [GenerateSpring] stretched with the
// affine [Stretch] map to whatever length the state calls for.
package kinematics
