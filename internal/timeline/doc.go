// Package timeline turns raw per-frame detection timestamps into the interval
// form the rest of the pipeline works with.
//
// Aggregate clusters timestamps into contiguous detection ranges, tolerating
// short flicker gaps. Complement inverts detection ranges into the keep
// ranges handed to the transcoder, expanding each detection by a safety
// margin and dropping sliver segments too short to render.
package timeline
