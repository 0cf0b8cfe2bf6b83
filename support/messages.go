package support

import "fmt"

// Control phrases sent as reply-keyboard buttons. Exact labels matter: the
// text router matches them verbatim before the relay fallback.
const (
	BtnLeaveDialog = "Покинуть диалог"
	BtnCloseDialog = "Закрыть диалог"
	BtnBack        = "Назад"
)

const (
	TxtAwaitHelper      = "Ожидайте подключения хелпера..."
	TxtAdminJoined      = "Администратор подключился к диалогу. Можете писать свои сообщения."
	TxtDialogStarted    = "Диалог начат. Теперь вы можете отвечать пользователю."
	TxtAdminBusy        = "У вас уже есть активный диалог. Завершите его перед началом нового."
	TxtUserBusy         = "Этот пользователь уже находится в диалоге с другим администратором."
	TxtClaimRaceLost    = "Не удалось создать диалог. Возможно, он уже существует."
	TxtClaimFailed      = "Произошла ошибка при начале диалога. Возможно, пользователь заблокировал бота."
	TxtDialogClosed     = "Ваш диалог с техподдержкой был завершен."
	TxtYouClosedDialog  = "Вы закрыли диалог."
	TxtDialogFinished   = "Диалог с техподдержкой завершен."
	TxtDialogShut       = "Диалог закрыт."
	TxtNoActiveDialogs  = "У вас нет активных диалогов."
	TxtDialogNotFound   = "Диалог не найден."
	TxtYouLeftDialog    = "Вы покинули диалог."
	TxtCloseError       = "Произошла ошибка при закрытии диалога."
	TxtRelayFailed      = "⚠️ Ошибка при отправке сообщения"
	TxtButtonAnswer     = "Ответить"
	TxtButtonCloseShort = "Закрыть"
)

// SupportRequestText is the broadcast line admins see when a user asks for help.
func SupportRequestText(handle string, userID int64) string {
	return fmt.Sprintf("@%s (ID: %d) запрашивает техподдержку", handle, userID)
}

// DialogStartedText annotates the broadcast message once an admin claims the user.
func DialogStartedText(userID, adminHandle string) string {
	return fmt.Sprintf("Диалог с пользователем ID: %s начат администратором @%s", userID, adminHandle)
}

// DialogClosedText annotates the broadcast message once an admin declines it.
func DialogClosedText(userID, adminHandle string) string {
	return fmt.Sprintf("Диалог с пользователем ID: %s завершен администратором @%s", userID, adminHandle)
}

// UserLeftText is the group notice sent when a user walks away from a dialog.
func UserLeftText(handle string) string {
	return fmt.Sprintf("Пользователь @%s покинул диалог с техподдержкой.", handle)
}

// RelayTag prefixes a user message relayed to the paired admin.
func RelayTag(username, senderID string) string {
	if username != "" {
		return fmt.Sprintf("От пользователя @%s:\n", username)
	}
	return fmt.Sprintf("От пользователя %s:\n", senderID)
}
