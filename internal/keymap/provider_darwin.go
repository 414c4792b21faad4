//go:build darwin && cgo

package keymap

/*
#cgo LDFLAGS: -framework Carbon -framework CoreFoundation
#include <Carbon/Carbon.h>
#include <stdlib.h>

static char *hk_copy_string(CFStringRef s) {
	if (s == NULL) return NULL;
	CFIndex len = CFStringGetMaximumSizeForEncoding(CFStringGetLength(s), kCFStringEncodingUTF8) + 1;
	char *buf = malloc(len);
	if (!CFStringGetCString(s, buf, len, kCFStringEncodingUTF8)) {
		free(buf);
		return NULL;
	}
	return buf;
}

static char *hk_current_layout_id(void) {
	TISInputSourceRef src = TISCopyCurrentKeyboardLayoutInputSource();
	if (src == NULL) return NULL;
	char *id = hk_copy_string((CFStringRef)TISGetInputSourceProperty(src, kTISPropertyInputSourceID));
	CFRelease(src);
	return id;
}

static int hk_current_layout(char **id, char **name, void **data, long *length) {
	TISInputSourceRef src = TISCopyCurrentKeyboardLayoutInputSource();
	if (src == NULL) return -1;
	*id = hk_copy_string((CFStringRef)TISGetInputSourceProperty(src, kTISPropertyInputSourceID));
	*name = hk_copy_string((CFStringRef)TISGetInputSourceProperty(src, kTISPropertyLocalizedName));
	CFDataRef layout = (CFDataRef)TISGetInputSourceProperty(src, kTISPropertyUnicodeKeyLayoutData);
	if (layout == NULL) {
		CFRelease(src);
		return -2;
	}
	*length = CFDataGetLength(layout);
	*data = malloc(*length);
	CFDataGetBytes(layout, CFRangeMake(0, *length), (UInt8 *)*data);
	CFRelease(src);
	return 0;
}
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unsafe"
)

const sourcePollInterval = time.Second

// SystemProvider reads the current keyboard layout input source through
// Text Input Sources and polls its identifier for changes.
type SystemProvider struct {
	subs subscribers

	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

func NewSystemProvider() (*SystemProvider, error) {
	p := &SystemProvider{closeCh: make(chan struct{})}
	p.wg.Add(1)
	go p.poll(currentSourceID())
	return p, nil
}

func currentSourceID() string {
	cid := C.hk_current_layout_id()
	if cid == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(cid))
	return C.GoString(cid)
}

func (p *SystemProvider) CurrentLayout(ctx context.Context) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}
	var (
		cid, cname *C.char
		data       unsafe.Pointer
		length     C.long
	)
	if rc := C.hk_current_layout(&cid, &cname, &data, &length); rc != 0 {
		if cid != nil {
			C.free(unsafe.Pointer(cid))
		}
		if cname != nil {
			C.free(unsafe.Pointer(cname))
		}
		return Source{}, fmt.Errorf("input source has no layout data (%d): %w", int(rc), ErrNoLayout)
	}
	defer C.free(data)
	src := Source{Rules: C.GoBytes(data, C.int(length))}
	if cid != nil {
		src.ID = C.GoString(cid)
		C.free(unsafe.Pointer(cid))
	}
	if cname != nil {
		src.LocalizedName = C.GoString(cname)
		C.free(unsafe.Pointer(cname))
	}
	return src, nil
}

func (p *SystemProvider) Subscribe(fn func()) func() {
	return p.subs.add(fn)
}

func (p *SystemProvider) Close() error {
	p.closeOnce.Do(func() {
		close(p.closeCh)
		p.wg.Wait()
	})
	return nil
}

func (p *SystemProvider) poll(last string) {
	defer p.wg.Done()
	ticker := time.NewTicker(sourcePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.closeCh:
			return
		case <-ticker.C:
			if id := currentSourceID(); id != last {
				last = id
				p.subs.notify()
			}
		}
	}
}
