package publish

import (
	"errors"
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// X11 sets WM_NAME on the root window of the default screen, which is what
// dwm style window managers draw in their bar.
type X11 struct {
	conn *xgb.Conn
	root xproto.Window
}

// NewX11 connects to display, an empty display means $DISPLAY.
func NewX11(display string) (*X11, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, errors.Join(ErrOpenDisplay, fmt.Errorf("display(%s) : %w", display, err))
	}
	return &X11{
		conn: conn,
		root: xproto.Setup(conn).DefaultScreen(conn).Root,
	}, nil
}

func (x *X11) Publish(text string) error {
	data := []byte(text)
	err := xproto.ChangePropertyChecked(x.conn, xproto.PropModeReplace, x.root,
		xproto.AtomWmName, xproto.AtomString, 8, uint32(len(data)), data).Check()
	if err != nil {
		return fmt.Errorf("set WM_NAME : %w", err)
	}
	return nil
}

func (x *X11) Close() error {
	x.conn.Close()
	return nil
}
