// Package lewei implements a client for the lewei_cam TCP control and
// streaming protocol used by a family of drone camera modules. It covers
// the framed binary wire protocol, the record types carried in command
// bodies, the per-frame video de-obfuscation transform, and the
// stream-session engine that multiplexes frame reads, heartbeats and
// cancellation on the camera's streaming socket.
package lewei
