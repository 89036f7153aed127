package ksz8851

import (
	"context"
	"log/slog"

	"github.com/soypat/lneto/ethernet"
)

// LevelTrace logs every frame moved across the bus. Below slog.LevelDebug;
// enable only on a handler that can keep up.
const LevelTrace slog.Level = slog.LevelDebug - 2

func (d *Dev) logenabled(lvl slog.Level) bool {
	return d.log != nil && d.log.Handler().Enabled(context.Background(), lvl)
}

func (d *Dev) logattrs(lvl slog.Level, msg string, attrs ...slog.Attr) {
	if d.log != nil {
		d.log.LogAttrs(context.Background(), lvl, msg, attrs...)
	}
}

func (d *Dev) info(msg string, attrs ...slog.Attr) {
	d.logattrs(slog.LevelInfo, msg, attrs...)
}

func (d *Dev) debug(msg string, attrs ...slog.Attr) {
	d.logattrs(slog.LevelDebug, msg, attrs...)
}

func (d *Dev) trace(msg string, attrs ...slog.Attr) {
	d.logattrs(LevelTrace, msg, attrs...)
}

// traceFrame logs the Ethernet addressing of a frame moved through the TXQ or
// RXQ. Gated on the trace level before parsing so the hot path pays nothing
// when tracing is off.
func (d *Dev) traceFrame(msg string, frame []byte) {
	if !d.logenabled(LevelTrace) {
		return
	}
	efrm, err := ethernet.NewFrame(frame)
	if err != nil {
		d.trace(msg, slog.Int("len", len(frame)), slog.String("err", err.Error()))
		return
	}
	var dst, src [len("ff:ff:ff:ff:ff:ff")]byte
	d.trace(msg,
		slog.Int("len", len(frame)),
		slog.String("dst", string(ethernet.AppendAddr(dst[:0], *efrm.DestinationHardwareAddr()))),
		slog.String("src", string(ethernet.AppendAddr(src[:0], *efrm.SourceHardwareAddr()))),
		slog.String("ethertype", efrm.EtherTypeOrSize().String()),
	)
}
