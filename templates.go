package ragchat

const defaultPromptTemplate = `Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

%[1]s

Question: %[2]s
Helpful Answer:`

const documentSeparator = "\n\n"
