package toggle

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework LocalAuthentication -framework Foundation

#import <LocalAuthentication/LocalAuthentication.h>
#import <Foundation/Foundation.h>
#import <dispatch/dispatch.h>
#include <stdlib.h>

#define SHROOM_BIO_NO_CONTEXT  -100
#define SHROOM_BIO_UNAVAILABLE -101
#define SHROOM_BIO_TIMEOUT     -103
#define SHROOM_BIO_UNKNOWN     -104

static int shroom_bio_prompt(const char *cReason, int timeoutSeconds) {
	@autoreleasepool {
		NSString *reason = cReason ? [[NSString alloc] initWithUTF8String:cReason] : nil;
		if (!reason) {
			reason = @"unlock the vault";
		}

		LAContext *context = [[LAContext alloc] init];
		if (!context) {
			return SHROOM_BIO_NO_CONTEXT;
		}

		NSError *canError = nil;
		if (![context canEvaluatePolicy:LAPolicyDeviceOwnerAuthenticationWithBiometrics error:&canError]) {
			return SHROOM_BIO_UNAVAILABLE;
		}

		dispatch_semaphore_t sema = dispatch_semaphore_create(0);
		__block BOOL success = NO;
		__block NSInteger code = 0;

		[context evaluatePolicy:LAPolicyDeviceOwnerAuthenticationWithBiometrics
		        localizedReason:reason
		                  reply:^(BOOL evaluated, NSError * _Nullable error) {
		                      success = evaluated;
		                      code = error ? [error code] : 0;
		                      dispatch_semaphore_signal(sema);
		                  }];

		long waited = dispatch_semaphore_wait(sema, dispatch_time(DISPATCH_TIME_NOW, (int64_t)timeoutSeconds * NSEC_PER_SEC));
		[context invalidate];

		if (waited != 0) {
			return SHROOM_BIO_TIMEOUT;
		}
		if (success) {
			return 0;
		}
		return code != 0 ? (int)code : SHROOM_BIO_UNKNOWN;
	}
}
*/
import "C"
import (
	"fmt"
	"strings"
	"unsafe"
)

// promptTimeoutSeconds bounds how long the prompt may stay on screen.
const promptTimeoutSeconds = 60

// Authenticate shows the Touch ID prompt with reason. Macs without a usable
// sensor report ErrUnsupported; any other failure wraps ErrAuthFailed.
func Authenticate(reason string) error {
	if strings.TrimSpace(reason) == "" {
		reason = unlockReason
	}
	cReason := C.CString(reason)
	defer C.free(unsafe.Pointer(cReason))

	switch code := int(C.shroom_bio_prompt(cReason, C.int(promptTimeoutSeconds))); code {
	case 0:
		return nil
	case int(C.SHROOM_BIO_UNAVAILABLE):
		return ErrUnsupported
	case int(C.SHROOM_BIO_TIMEOUT):
		return fmt.Errorf("%w: prompt timed out", ErrAuthFailed)
	default:
		return fmt.Errorf("%w (code %d)", ErrAuthFailed, code)
	}
}
