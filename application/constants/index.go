package constants

// public URL prefix of stored photos, followed by <userId>/<file>
const PhotoURLPrefix = "/data/img"

const MaxPhotoSlots = 3

const MaxBase64Photos = 3

// user facing messages, the mini app is Russian-only
const (
	MsgUserIDRequired    = "Не указан userId"
	MsgFileRequired      = "Файл не загружен"
	MsgFileURLRequired   = "Не указан файл или ссылка на файл"
	MsgUserNotFound      = "Пользователь не найден"
	MsgGenderRequired    = "Сначала укажите свой пол в анкете"
	MsgNoFace            = "На фото не обнаружено лицо. Загрузите фото, на котором хорошо видно ваше лицо"
	MsgMeme              = "Фото похоже на мем, скриншот или сгенерированное изображение. Загрузите своё настоящее фото"
	MsgGenderMismatch    = "Пол на фото не совпадает с указанным при регистрации. Если пол указан неверно, пройдите регистрацию заново"
	MsgGenderUnverified  = "Не удалось проверить фото. Попробуйте загрузить другое фото"
	MsgPhotoNotFound     = "Фото не найдено"
	MsgTooManyPhotos     = "Можно загрузить не более 3 фото за раз"
	MsgNoPhotosUploaded  = "Не удалось загрузить ни одного фото"
	MsgInvalidImage      = "Некорректное изображение"
	MsgFileTooLarge      = "Файл слишком большой"
	MsgDownloadFailed    = "Не удалось скачать изображение по ссылке"
	MsgServerError       = "Внутренняя ошибка сервера. Попробуйте позже"
	MsgServiceDown       = "Сервис проверки фото временно недоступен. Попробуйте позже"
	MsgInvalidPayload    = "Некорректный запрос"
	MsgValidationFailed  = "Проверьте корректность данных"
	MsgRateLimited       = "Слишком много запросов. Попробуйте позже"
	MsgRouteDoesNotExist = "Маршрут не существует"
)
