package config

type WorkerKeyStruct struct {
	PersistVocabularyQueue  string
	PersistQuizResultsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistVocabularyQueue:  "persist_vocabulary_queue",
	PersistQuizResultsQueue: "persist_quiz_results_queue",
}
