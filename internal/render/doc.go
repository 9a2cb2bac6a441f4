// Package render draws mapped configurations with gonum/plot and encodes
// them as stills, GIFs, PNG sequences or ffmpeg video.
//
// A [Scene] fixes the viewport and pixel size. Every frame of an animation
// is drawn by the same scene, so a frame is a pure function of its layers.
// Encoders accept frames only in index order 0, 1, 2, ... and report any
// other order as a [dynamo.RenderError] wrapping [dynamo.ErrFrameOrder].
//
// All file outputs are written to a temporary file in the destination
// directory and renamed into place, so a failed render leaves nothing
// behind.
package render
