package i18n

// translations maps notification key → language code → format string.
//
// Supported languages: en (English), ru (Russian), tr (Turkish), tk (Turkmen).
var translations = map[string]map[string]string{

	// ─── Personal info ───────────────────────────────────────────────────────
	"notification.verification.personal_info_submitted.title": {
		"en": "Personal Details Saved",
		"ru": "Личные данные сохранены",
		"tr": "Kişisel Bilgiler Kaydedildi",
		"tk": "Şahsy Maglumatlar Saklandy",
	},
	"notification.verification.personal_info_submitted.body": {
		"en": "Next, upload an identity document.",
		"ru": "Далее загрузите документ, удостоверяющий личность.",
		"tr": "Sırada kimlik belgenizi yüklemek var.",
		"tk": "Indiki ädim şahsyýetnamany ýükläň.",
	},

	// ─── Document ────────────────────────────────────────────────────────────
	"notification.verification.document_submitted.title": {
		"en": "Document Received",
		"ru": "Документ получен",
		"tr": "Belge Alındı",
		"tk": "Resminama Kabul Edildi",
	},
	// %s = document type
	"notification.verification.document_submitted.body": {
		"en": "Your %s was uploaded. Next, take a selfie.",
		"ru": "Документ %s загружен. Далее сделайте селфи.",
		"tr": "%s yüklendi. Sırada selfie çekmek var.",
		"tk": "%s ýüklendi. Indiki ädim selfi düşüriň.",
	},

	// ─── Biometric ───────────────────────────────────────────────────────────
	"notification.verification.biometric_submitted.title": {
		"en": "Verification Submitted",
		"ru": "Заявка отправлена",
		"tr": "Doğrulama Gönderildi",
		"tk": "Barlag Iberildi",
	},
	// %s = verification id
	"notification.verification.biometric_submitted.body": {
		"en": "Your application %s is under review.",
		"ru": "Ваша заявка %s находится на проверке.",
		"tr": "%s numaralı başvurunuz inceleniyor.",
		"tk": "%s belgili arzaňyz barlanýar.",
	},

	// ─── Decisions ───────────────────────────────────────────────────────────
	"notification.verification.approved.title": {
		"en": "Identity Verified",
		"ru": "Личность подтверждена",
		"tr": "Kimlik Doğrulandı",
		"tk": "Şahsyýet Tassyklandy",
	},
	"notification.verification.approved.body": {
		"en": "Your identity has been verified. You now have full access.",
		"ru": "Ваша личность подтверждена. Теперь у вас полный доступ.",
		"tr": "Kimliğiniz doğrulandı. Artık tam erişiminiz var.",
		"tk": "Şahsyýetiňiz tassyklandy. Indi doly elýeterlilik bar.",
	},
	"notification.verification.rejected.title": {
		"en": "Verification Rejected",
		"ru": "Проверка отклонена",
		"tr": "Doğrulama Reddedildi",
		"tk": "Barlag Ret Edildi",
	},
	// %s = rejection reason
	"notification.verification.rejected.body": {
		"en": "Your verification was rejected: %s. You can start again.",
		"ru": "Проверка отклонена: %s. Вы можете начать заново.",
		"tr": "Doğrulamanız reddedildi: %s. Yeniden başlayabilirsiniz.",
		"tk": "Barlagyňyz ret edildi: %s. Täzeden başlap bilersiňiz.",
	},

	// ─── Reset ───────────────────────────────────────────────────────────────
	"notification.verification.reset.title": {
		"en": "Verification Reset",
		"ru": "Проверка сброшена",
		"tr": "Doğrulama Sıfırlandı",
		"tk": "Barlag Täzelendi",
	},
	"notification.verification.reset.body": {
		"en": "Your verification progress was cleared.",
		"ru": "Ход проверки был сброшен.",
		"tr": "Doğrulama ilerlemeniz temizlendi.",
		"tk": "Barlag ösüşiňiz arassalandy.",
	},
}
