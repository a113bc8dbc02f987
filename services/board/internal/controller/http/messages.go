package http

import (
	"fmt"
	"strings"

	"kuchikomi/services/board/internal/usecase"
)

const (
	flashSuccess = "success"
	flashInfo    = "info"
	flashError   = "error"
)

const (
	msgUserCreateFailed   = "ユーザー情報の作成に失敗しました。ページを更新してお試しください。"
	msgUserLoadFailed     = "ユーザー情報の取得に失敗しました。"
	msgNoIdentity         = "ユーザー情報が取得できません。ページを更新してお試しください。"
	msgNoIdentityAJAX     = "ユーザー情報がありません。ページを更新してください。"
	msgNoIdentityPage     = "ユーザー情報がありません。"
	msgUserNotFound       = "ユーザーが見つかりません。"
	msgFetchFailed        = "データの取得中にエラーが発生しました。"
	msgSearchFailed       = "検索中にエラーが発生しました。"
	msgAccountFailed      = "アカウント情報の取得中にエラーが発生しました。"
	msgPostCreated        = "投稿が完了しました！"
	msgPostSaveFailed     = "投稿の保存中にエラーが発生しました。もう一度お試しください。"
	msgUploadFailed       = "画像のアップロードに失敗しました。もう一度お試しください。"
	msgRequestTooLarge    = "ファイルサイズは10MB以下にしてください。"
	msgPostDeleted        = "投稿を削除しました。"
	msgPostNotFound       = "投稿が存在しません。"
	msgDeleteForbidden    = "削除権限がないか、投稿が存在しません。"
	msgDeleteFailed       = "投稿の削除中にエラーが発生しました。"
	msgPasswordRequired   = "パスワードを入力してください。"
	msgPasswordWrong      = "パスワードが間違っています。"
	msgAdvertiserLogin    = "広告アカウントにログインしました。"
	msgAdvertiserMissing  = "広告アカウントが見つかりません。"
	msgAdminGranted       = "管理者権限が付与されました。"
	msgLoginFailed        = "ログイン処理中にエラーが発生しました。"
	msgAdminRequired      = "管理者権限が必要です。"
	msgUsernameTaken      = "そのユーザー名は既に使用されています。"
	msgUsernameUpdated    = "ユーザー名を更新しました。"
	msgUsernameFailed     = "ユーザー名の更新に失敗しました。"
	msgRestoredPrevious   = "前のアカウントに戻りました。"
	msgPreviousMissing    = "前のアカウント情報が見つかりません。"
	msgPrivilegesDropped  = "管理者権限からログアウトしました。"
	msgLogoutFailed       = "ログアウト処理中にエラーが発生しました。"
	msgLiked              = "いいねしました！"
	msgUnliked            = "いいねを取り消しました。"
	msgLikeFailed         = "処理中にエラーが発生しました。"
	msgLikeFailedPage     = "エラーが発生しました。もう一度お試しください。"
	msgRankingFailed      = "ランキングの取得中にエラーが発生しました。"
	msgAdvertisementsFail = "広告一覧の取得中にエラーが発生しました。"
	msgForbidden          = "この操作を行う権限がありません。"
	msgNotFound           = "ページが見つかりません。"
	msgInternal           = "サーバーエラーが発生しました。"
	msgPostUpdated        = "投稿を更新しました。"
)

var fieldLabels = map[string]string{
	"image":       "画像",
	"caption":     "紹介文",
	"price_range": "価格帯",
	"area":        "地域",
	"store_name":  "店名",
	"school":      "高校",
	"username":    "ユーザー名",
}

func fieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

// validationMessages renders the problems of verr. Missing fields are
// listed together in one message.
func validationMessages(verr *usecase.ValidationError) []string {
	var missing []string
	var messages []string

	for _, p := range verr.Problems {
		switch p.Kind {
		case usecase.ProblemRequired:
			missing = append(missing, fieldLabel(p.Field))
		case usecase.ProblemTooLong:
			messages = append(messages, fmt.Sprintf("%sは%d文字以内で入力してください。", fieldLabel(p.Field), p.Max))
		case usecase.ProblemExtension:
			messages = append(messages, "許可されていないファイル形式です。JPEG、PNG形式の画像をアップロードしてください。")
		case usecase.ProblemTooLarge:
			messages = append(messages, fmt.Sprintf("ファイルサイズは%dMB以下にしてください。", p.Max/(1024*1024)))
		case usecase.ProblemNotImage:
			messages = append(messages, "JPEG、PNG形式の画像のみ対応しています。")
		}
	}

	if len(missing) == 1 && missing[0] == fieldLabel("username") {
		return append([]string{"ユーザー名を入力してください。"}, messages...)
	}
	if len(missing) > 0 {
		messages = append([]string{"以下の項目は必須です: " + strings.Join(missing, ", ")}, messages...)
	}
	return messages
}
