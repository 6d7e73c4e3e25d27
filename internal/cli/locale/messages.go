package locale

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The key is the English text.
const (
	MsgLoggedIn      = "Logged in as %s."
	MsgLoggedOut     = "Logged out."
	MsgRegistered    = "Account %s created. Log in to continue."
	MsgUploadSummary = "Upload finished: %d succeeded, %d failed."
	MsgLocaleSet     = "Language set to %s."
	MsgUnionCreated  = "Union %s created (id %d)."
	MsgUnionUpdated  = "Union %d renamed to %s."
	MsgUnionDeleted  = "Union %d deleted."
	MsgPlayerDeleted = "Player %s deleted."
	MsgLoginRequired = "Login required. Run: login --redirect %s"
	MsgNotLoggedIn   = "Not logged in."
	MsgNoResults     = "No results."
	MsgIsCSaved      = "Saved the is-C flag for %d characters."
	MsgTokenExpired  = "Your session was rejected by the server. Run: login"
)

// keys lists every message key.
var keys = []string{
	MsgLoggedIn, MsgLoggedOut, MsgRegistered, MsgUploadSummary,
	MsgLocaleSet, MsgUnionCreated, MsgUnionUpdated, MsgUnionDeleted,
	MsgPlayerDeleted, MsgLoginRequired, MsgNotLoggedIn, MsgNoResults,
	MsgIsCSaved, MsgTokenExpired,
}

var translations = map[language.Tag]map[string]string{
	language.SimplifiedChinese: {
		MsgLoggedIn:      "已登录为 %s。",
		MsgLoggedOut:     "已退出登录。",
		MsgRegistered:    "账号 %s 已创建，请登录。",
		MsgUploadSummary: "上传完成：成功 %d 个，失败 %d 个。",
		MsgLocaleSet:     "语言已设置为 %s。",
		MsgUnionCreated:  "联盟 %s 已创建（ID %d）。",
		MsgUnionUpdated:  "联盟 %d 已重命名为 %s。",
		MsgUnionDeleted:  "联盟 %d 已删除。",
		MsgPlayerDeleted: "玩家 %s 已删除。",
		MsgLoginRequired: "需要登录。请运行：login --redirect %s",
		MsgNotLoggedIn:   "未登录。",
		MsgNoResults:     "没有结果。",
		MsgIsCSaved:      "已保存 %d 个角色的 is-C 设置。",
		MsgTokenExpired:  "服务器拒绝了当前会话。请运行：login",
	},
	language.TraditionalChinese: {
		MsgLoggedIn:      "已登入為 %s。",
		MsgLoggedOut:     "已登出。",
		MsgRegistered:    "帳號 %s 已建立，請登入。",
		MsgUploadSummary: "上傳完成：成功 %d 個，失敗 %d 個。",
		MsgLocaleSet:     "語言已設定為 %s。",
		MsgUnionCreated:  "聯盟 %s 已建立（ID %d）。",
		MsgUnionUpdated:  "聯盟 %d 已重新命名為 %s。",
		MsgUnionDeleted:  "聯盟 %d 已刪除。",
		MsgPlayerDeleted: "玩家 %s 已刪除。",
		MsgLoginRequired: "需要登入。請執行：login --redirect %s",
		MsgNotLoggedIn:   "未登入。",
		MsgNoResults:     "沒有結果。",
		MsgIsCSaved:      "已儲存 %d 個角色的 is-C 設定。",
		MsgTokenExpired:  "伺服器拒絕了目前的工作階段。請執行：login",
	},
	language.Japanese: {
		MsgLoggedIn:      "%s としてログインしました。",
		MsgLoggedOut:     "ログアウトしました。",
		MsgRegistered:    "アカウント %s を作成しました。ログインしてください。",
		MsgUploadSummary: "アップロード完了：成功 %d 件、失敗 %d 件。",
		MsgLocaleSet:     "言語を %s に設定しました。",
		MsgUnionCreated:  "ユニオン %s を作成しました（ID %d）。",
		MsgUnionUpdated:  "ユニオン %d の名前を %s に変更しました。",
		MsgUnionDeleted:  "ユニオン %d を削除しました。",
		MsgPlayerDeleted: "プレイヤー %s を削除しました。",
		MsgLoginRequired: "ログインが必要です。実行：login --redirect %s",
		MsgNotLoggedIn:   "ログインしていません。",
		MsgNoResults:     "結果がありません。",
		MsgIsCSaved:      "%d 体のキャラクターの is-C 設定を保存しました。",
		MsgTokenExpired:  "サーバーがセッションを拒否しました。実行：login",
	},
	language.Korean: {
		MsgLoggedIn:      "%s(으)로 로그인했습니다.",
		MsgLoggedOut:     "로그아웃했습니다.",
		MsgRegistered:    "계정 %s이(가) 생성되었습니다. 로그인하세요.",
		MsgUploadSummary: "업로드 완료: 성공 %d개, 실패 %d개.",
		MsgLocaleSet:     "언어가 %s(으)로 설정되었습니다.",
		MsgUnionCreated:  "유니온 %s이(가) 생성되었습니다 (ID %d).",
		MsgUnionUpdated:  "유니온 %d의 이름이 %s(으)로 변경되었습니다.",
		MsgUnionDeleted:  "유니온 %d이(가) 삭제되었습니다.",
		MsgPlayerDeleted: "플레이어 %s이(가) 삭제되었습니다.",
		MsgLoginRequired: "로그인이 필요합니다. 실행: login --redirect %s",
		MsgNotLoggedIn:   "로그인하지 않았습니다.",
		MsgNoResults:     "결과가 없습니다.",
		MsgIsCSaved:      "캐릭터 %d개의 is-C 설정을 저장했습니다.",
		MsgTokenExpired:  "서버가 세션을 거부했습니다. 실행: login",
	},
}

var messages = buildCatalog()

// buildCatalog panics on a malformed entry; the catalog is fixed at
// compile time.
func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	mustSet := func(tag language.Tag, key, msg string) {
		if err := b.SetString(tag, key, msg); err != nil {
			panic(fmt.Sprintf("locale: catalog entry %s %q: %v", tag, key, err))
		}
	}
	for _, key := range keys {
		mustSet(language.English, key, key)
	}
	for tag, msgs := range translations {
		for key, msg := range msgs {
			mustSet(tag, key, msg)
		}
	}
	return b
}

// NewPrinter returns a printer for tag backed by the CLI catalog.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(messages))
}
