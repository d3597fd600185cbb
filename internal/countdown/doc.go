// Package countdown renders countdown frames and assembles them into an
// animation.
//
// A Countdown is built once from a RenderConfig. Construction validates the
// collaborators and computes the render fingerprint, which namespaces every
// cached frame. RenderFrame produces one frame for a seconds-remaining value,
// serving it from the frame cache when possible. Generate walks the runtime
// window from the reference time toward the target and returns frames in tick
// order, optionally rendering ticks concurrently.
//
// Cached frames are stored as PNG bytes. A cached frame and a freshly rendered
// one for the same fingerprint and seconds carry identical Encoded bytes.
package countdown
