// Package playback is the boundary to the external pattern-playback engine.
//
// chaosynth never synthesizes or schedules sound itself. A [Pattern] is
// handed to an [Engine] once and the pipeline moves on:
//
//   - [ScriptEngine]: renders a live-coding pattern program
//   - [MIDIFileEngine]: writes a Standard MIDI File for any sequencer
//   - [Recorder]: keeps patterns in memory (dry runs and tests)
//
// Synth voices are chosen from the engine's registry, which is always
// supplied by the caller, via [ResolveVoice].
package playback
