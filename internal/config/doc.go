// Package config loads yt-audio configuration.
//
// Values are layered, later sources winning:
//
//  1. built-in defaults
//  2. $XDG_CONFIG_HOME/yt-audio/config.toml (or the file given with -config)
//  3. ./config.toml
//  4. YTAUDIO_* environment variables, also read from a .env file
//
// Environment keys use a double underscore between section and key,
// e.g. YTAUDIO_AUDIO__SAMPLE_RATE=44100 or YTAUDIO_OUTPUT__BACKEND=ffmpeg.
package config
