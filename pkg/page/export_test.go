package page

var TranslateForTest = translate
