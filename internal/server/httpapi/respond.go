// Package httpapi exposes the JSON-over-HTTP surface: the public signup and
// login endpoints under /api and the privileged decryption gateway under
// /internal.
package httpapi

import (
	"encoding/json"
	"net/http"
)

// failure messages shown to the (Korean) client, keyed by business code.
var messages = map[string]string{
	"invalid_json":            "요청 형식이 올바르지 않습니다.",
	"invalid_phone":           "휴대폰 번호는 숫자 11자리로 입력해주세요.",
	"missing_password":        "비밀번호를 입력해주세요.",
	"needs_password_setup":    "비밀번호가 아직 설정되지 않았습니다.",
	"invalid_password":        "비밀번호가 올바르지 않습니다.",
	"locked":                  "시도가 너무 많아 잠시 후 다시 시도해주세요.",
	"not_found":               "등록된 계정을 찾을 수 없습니다.",
	"inactive_admin":          "비활성화된 총무 계정입니다.",
	"inactive_manager":        "비활성화된 본부장 계정입니다.",
	"weak_password":           "비밀번호는 8자 이상이며 영문+숫자+특수문자를 포함해야 합니다.",
	"password_mismatch":       "비밀번호가 일치하지 않습니다.",
	"already_exists":          "해당 번호로 계정이 이미 있습니다.",
	"already_set":             "이미 비밀번호가 설정되어 있습니다.",
	"phone_not_verified":      "휴대폰 인증이 필요합니다.",
	"cooldown":                "잠시 후 다시 시도해주세요.",
	"sms_send_failed":         "SMS 전송에 실패했습니다.",
	"invalid_code":            "인증 코드가 올바르지 않습니다.",
	"expired_code":            "인증 코드가 만료되었습니다.",
	"no_code":                 "인증 코드가 없습니다.",
	"not_set":                 "비밀번호가 아직 설정되지 않았습니다.",
	"missing_token":           "인증 코드를 입력해주세요.",
	"invalid_token":           "인증 코드가 유효하지 않습니다.",
	"expired_token":           "인증 코드가 만료되었습니다.",
	"invalid_payload":         "요청 값이 올바르지 않습니다.",
	"invalid_resident_number": "주민등록번호가 올바르지 않습니다.",
	"duplicate_resident":      "이미 등록된 주민등록번호입니다.",
	"unauthorized":            "권한이 없습니다.",
	"db_error":                "일시적인 오류가 발생했습니다. 잠시 후 다시 시도해주세요.",
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeOK writes {"ok":true} merged with extra fields.
func writeOK(w http.ResponseWriter, extra map[string]any) {
	body := map[string]any{"ok": true}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// writeFail writes the failure envelope {"ok":false, code, message} merged
// with extra fields (remaining, lockedUntil).
func writeFail(w http.ResponseWriter, status int, code string, extra map[string]any) {
	body := map[string]any{"ok": false, "code": code, "message": messages[code]}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// writeStoreError reports a store or crypto failure as an opaque 500. The
// underlying error is logged by the handler, never surfaced.
func writeStoreError(w http.ResponseWriter) {
	writeFail(w, http.StatusInternalServerError, "db_error", nil)
}
